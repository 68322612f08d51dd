package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mail-hub/internal/domain"
)

func newBufferedPrinter(quiet bool) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := NewPrinter(PrinterOptions{ColorMode: ColorNever, Quiet: quiet, Out: &out, Err: &errOut})
	return p, &out, &errOut
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"auto", ColorAuto, false},
		{"", ColorAuto, false},
		{"always", ColorAlways, false},
		{"never", ColorNever, false},
		{"sometimes", ColorAuto, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColorMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveColors(t *testing.T) {
	assert.True(t, ResolveColors(ColorAlways, false))
	assert.False(t, ResolveColors(ColorNever, true))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ResolveColors(ColorAuto, true))
}

func TestPrinter_Messages(t *testing.T) {
	p, out, errOut := newBufferedPrinter(false)

	p.Info("hello %s", "world")
	p.Success("saved")
	p.Warning("careful")
	p.Error("broken")

	assert.Contains(t, out.String(), "hello world")
	assert.Contains(t, out.String(), "[OK] saved")
	assert.Contains(t, errOut.String(), "[WARN] careful")
	assert.Contains(t, errOut.String(), "[ERROR] broken")
}

func TestPrinter_QuietKeepsValuesAndErrors(t *testing.T) {
	p, out, errOut := newBufferedPrinter(true)

	p.Info("chatter")
	p.Success("chatter")
	p.Header("Accounts")
	p.Print("https://alice.example.com")
	p.Error("still shown")

	assert.Equal(t, "https://alice.example.com\n", out.String())
	assert.Contains(t, errOut.String(), "still shown")
	assert.True(t, p.IsQuiet())
}

func TestPrinter_KindBadgePlain(t *testing.T) {
	p, _, _ := newBufferedPrinter(false)

	assert.Equal(t, "[REWRITE]", p.KindBadge(domain.RouteRewrite))
	assert.Equal(t, "[PASS]", p.KindBadge(domain.RoutePass))
	assert.Equal(t, "bold", p.Bold("bold"))
	assert.Equal(t, "dim", p.Dim("dim"))
}

func TestPrinter_Header(t *testing.T) {
	p, out, _ := newBufferedPrinter(false)

	p.Header("Route")
	assert.Equal(t, "\nRoute\n-----\n", out.String())
}

func TestPrinter_NewTable(t *testing.T) {
	p, out, _ := newBufferedPrinter(false)

	table := p.NewTable([]string{"Email", "Name"})
	table.AddRow([]string{"alice@example.com", "Alice"})
	require.NoError(t, table.Render())

	assert.Equal(t, 1, table.Len())
	assert.Contains(t, out.String(), "EMAIL")
	assert.Contains(t, out.String(), "alice@example.com")

	quiet, quietOut, _ := newBufferedPrinter(true)
	qt := quiet.NewTable([]string{"Email"})
	qt.AddRow([]string{"alice@example.com"})
	require.NoError(t, qt.Render())
	assert.Empty(t, quietOut.String())
}
