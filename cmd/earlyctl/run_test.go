package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/earlyalloc/alloc"
	"github.com/joshuapare/earlyalloc/config"
	"github.com/joshuapare/earlyalloc/replay"
)

const runScriptText = `# two byte allocations and two pages
alloc 64 16
alloc 8 8
pages 2 4096
free $1
stats
check
`

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name           string
		script         string
		json           bool
		touch          bool
		stopOnError    bool
		wantErr        bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:   "text output",
			script: runScriptText,
			wantContain: []string{
				"alloc 0x40 0x10",
				"pages 0x2 0x1000",
				"-> 0x",
				"bytes 72 B/1.0 MiB  pages 2/256",
				"6 op(s), 0 failed, 2 live",
				"Pages:      2 used, 254 available of 256 (page size 4.0 KiB)",
			},
			wantNotContain: []string{"FAIL", "Touched:"},
		},
		{
			name:        "touch",
			script:      runScriptText,
			touch:       true,
			wantContain: []string{"Touched:    2 allocation(s) verified"},
		},
		{
			name:        "failure is reported not returned",
			script:      "alloc 0x200000 8\nalloc 8 8\n",
			wantContain: []string{"FAIL alloc: no memory", "2 op(s), 1 failed, 1 live"},
		},
		{
			name:        "stop on error",
			script:      "alloc 0x200000 8\nalloc 8 8\n",
			stopOnError: true,
			wantErr:     true,
			wantContain: []string{"1 op(s), 1 failed, 0 live"},
		},
		{
			name:           "json output",
			script:         runScriptText,
			json:           true,
			wantContain:    []string{`"failures": 0`, `"live": 2`},
			wantNotContain: []string{"op(s)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useConfig(t, config.Default())
			jsonOut, runTouch, runStopOnError = tt.json, tt.touch, tt.stopOnError

			path := writeScript(t, tt.script)
			output, err := captureOutput(t, func() error {
				return runRun([]string{path})
			})

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestRunCommand_JSONShape(t *testing.T) {
	useConfig(t, config.Default())
	jsonOut, runTouch = true, true

	path := writeScript(t, runScriptText)
	output, err := captureOutput(t, func() error {
		return runRun([]string{path})
	})
	require.NoError(t, err)

	var out runOutput
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	require.Len(t, out.Results, 6)

	// Region base is page aligned, so the first byte allocation sits at start.
	assert.Equal(t, out.Stats.Start, out.Results[0].Addr)
	assert.Equal(t, out.Stats.PagePos, out.Results[2].Addr)
	assert.Empty(t, out.Results[4].Addr, "stats carries counters, not an address")
	require.NotNil(t, out.Results[4].Counters)
	assert.EqualValues(t, 2, out.Results[4].Counters.UsedPages)
	assert.Empty(t, out.Results[5].Error)

	assert.Equal(t, 2, out.Touched)
	assert.EqualValues(t, 1, out.Stats.ByteCount)
	assert.EqualValues(t, 2, out.Stats.UsedPages)
	assert.EqualValues(t, 4096, out.Stats.PageSize)
}

func TestRunCommand_ScriptErrors(t *testing.T) {
	useConfig(t, config.Default())

	_, err := captureOutput(t, func() error {
		return runRun([]string{writeScript(t, "alloc eight 8\n")})
	})
	require.ErrorIs(t, err, replay.ErrSyntax)

	_, err = captureOutput(t, func() error {
		return runRun([]string{writeScript(t, "alloc 8 8\nfree $1\nfree $1\n")})
	})
	require.ErrorIs(t, err, replay.ErrBadRef)

	_, err = captureOutput(t, func() error {
		return runRun([]string{"/nonexistent/boot.script"})
	})
	require.Error(t, err)
}

// TestRunCommand_InitOutsideRegion replays an explicit init at an address
// that is not mapped: the allocator works on numbers alone, and --touch
// leaves such ranges alone.
func TestRunCommand_InitOutsideRegion(t *testing.T) {
	useConfig(t, config.Default())
	runTouch = true

	path := writeScript(t, "init 0x1000 0x2000\nalloc 8 8\npages 1 4096\n")
	output, err := captureOutput(t, func() error {
		return runRun([]string{path})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"-> 0x1000", "-> 0x2000", "Touched:    0 allocation(s) verified"})
}

func TestVerifyTouched_DetectsOverwrite(t *testing.T) {
	s, err := openSession(config.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	addr, err := s.alloc.Alloc(alloc.Layout{Size: 32, Align: 8})
	require.NoError(t, err)
	res := replay.Result{Op: replay.Op{Kind: replay.KindAlloc, Args: [2]uintptr{32, 8}, ID: 1}, Addr: addr}
	stamp(s, res)

	live := []replay.Span{{ID: 1, Addr: addr, Size: 32}}
	n, err := verifyTouched(s, live)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	view, err := s.region.Bytes(addr+5, 1)
	require.NoError(t, err)
	view[0] ^= 0xFF

	_, err = verifyTouched(s, live)
	require.ErrorIs(t, err, errTouchMismatch)
	assert.Contains(t, err.Error(), "byte 5")
}
