package console

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/service/driver"
)

// TestRenderer_Frame renders state, actuators, sensors and menu without colour.
func TestRenderer_Frame(t *testing.T) {
	t.Parallel()

	d := driver.New()
	_, err := d.Apply(context.Background(), driver.CommandStart)
	require.NoError(t, err)
	_, err = d.Apply(context.Background(), driver.CommandTempCritical)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, false).Frame(d.Snapshot()))

	out := buf.String()
	require.NotContains(t, out, "\x1b[")
	require.Contains(t, out, "SMART HEMODIALYSIS CONTROL SYSTEM SIMULATION")
	require.Contains(t, out, "CURRENT STATE : TEMP_CRIT (S6)")
	require.Contains(t, out, "INFO          : "+dialysis.InfoTempCrit)
	require.Contains(t, out, "BLOOD PUMP    : [OFF] Stopped")
	require.Contains(t, out, "SAFETY CLAMP  : [CLOSED] BLOCKED")
	require.Contains(t, out, "PELTIER       : OFF (Safety)")
	require.Contains(t, out, "ALARM         : SIREN (CRITICAL)")
	require.Contains(t, out, "Temp Code     : 2 (critical)")
	require.Contains(t, out, "[0] RESET SYSTEM (Unlock Critical)")
	require.Contains(t, out, "Input Command > ")
}

// TestRenderer_Status covers an idle snapshot.
func TestRenderer_Status(t *testing.T) {
	t.Parallel()

	out := NewRenderer(new(bytes.Buffer), false).Status(driver.New().Snapshot())
	require.Contains(t, out, "CURRENT STATE : IDLE (S0)")
	require.Contains(t, out, "INFO          : "+dialysis.InfoSystemReady)
	require.Contains(t, out, "SAFETY CLAMP  : [OPEN] Flowing")
	require.Contains(t, out, "Air Bubble    : false")
}

// TestRenderer_Notice writes one line.
func TestRenderer_Notice(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, false).Notice("unknown key"))
	require.Equal(t, "unknown key\n", buf.String())
}
