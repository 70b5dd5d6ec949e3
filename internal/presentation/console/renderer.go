package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/service/driver"
)

const banner = "====================================================\n" +
	"   SMART HEMODIALYSIS CONTROL SYSTEM SIMULATION\n" +
	"===================================================="

// Renderer writes the simulator screen to an output stream.
type Renderer struct {
	// w receives rendered frames.
	w io.Writer
	// styles is bound to w.
	styles styles
}

// NewRenderer returns a renderer writing to w. With color false the output
// carries no escape sequences.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{
		w:      w,
		styles: newStyles(w, color),
	}
}

// Frame renders the full screen for a snapshot: banner, status and menu.
func (r *Renderer) Frame(snapshot driver.Snapshot) error {
	var b strings.Builder

	b.WriteString(r.styles.title.Render(banner))
	b.WriteString("\n")
	b.WriteString(r.Status(snapshot))
	b.WriteString("\n")
	b.WriteString(r.Menu())

	_, err := io.WriteString(r.w, b.String())

	return err
}

// Status renders the state, actuator and sensor blocks.
func (r *Renderer) Status(snapshot driver.Snapshot) string {
	var (
		b         strings.Builder
		tier      = r.styles.tier(snapshot.Tier)
		actuators = snapshot.Actuators
		sensors   = snapshot.Sensors
	)

	b.WriteString("\n")
	b.WriteString(tier.Render(fmt.Sprintf("CURRENT STATE : %s (%s)", snapshot.State, snapshot.State.Code())))
	b.WriteString("\n")
	b.WriteString(tier.Render("INFO          : " + actuators.Info))
	b.WriteString("\n")

	r.section(&b, "ACTUATOR STATUS")
	r.row(&b, "BLOOD PUMP", onOff(actuators.PumpOn, "[ON] Running", "[OFF] Stopped"))
	r.row(&b, "SAFETY CLAMP", onOff(actuators.SafetyClampClosed, "[CLOSED] BLOCKED", "[OPEN] Flowing"))
	r.row(&b, "PELTIER", string(actuators.Peltier))
	r.row(&b, "ALARM", string(actuators.Alarm))

	r.section(&b, "SENSOR INPUTS")
	r.row(&b, "Air Bubble", fmt.Sprintf("%t", sensors.AirBubble))
	r.row(&b, "Pressure Code", codeValue(sensors.Press))
	r.row(&b, "Temp Code", codeValue(sensors.Temp))
	r.row(&b, "Flow Code", codeValue(sensors.Flow))
	r.row(&b, "Cond Code", codeValue(sensors.Cond))
	r.row(&b, "SpO2 Hypoxia", fmt.Sprintf("%t", sensors.SpO2Hypoxia))

	return b.String()
}

// Menu renders the sensor injection panel.
func (r *Renderer) Menu() string {
	var b strings.Builder

	r.section(&b, "SENSOR INJECTION PANEL")

	for _, entry := range driver.Menu() {
		fmt.Fprintf(&b, "[%s] %s\n", entry.Key, entry.Label)
	}

	b.WriteString("[q] Quit\n")
	b.WriteString("\nInput Command > ")

	return b.String()
}

// Notice writes a single line, e.g. an input error.
func (r *Renderer) Notice(message string) error {
	_, err := fmt.Fprintln(r.w, r.styles.tier(dialysis.TierWarning).Render(message))

	return err
}

// section writes a block header.
func (r *Renderer) section(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(r.styles.header.Render("--- " + title + " ---"))
	b.WriteString("\n")
}

// row writes an aligned label and value.
func (r *Renderer) row(b *strings.Builder, label, value string) {
	b.WriteString(r.styles.label.Render(fmt.Sprintf("%-14s:", label)))
	b.WriteString(" ")
	b.WriteString(r.styles.value.Render(value))
	b.WriteString("\n")
}

// onOff picks the text of a boolean actuator.
func onOff(v bool, on, off string) string {
	if v {
		return on
	}

	return off
}

// codeValue renders a tri-state sensor code with its meaning.
func codeValue(s dialysis.Severity) string {
	return fmt.Sprintf("%d (%s)", uint8(s), s)
}
