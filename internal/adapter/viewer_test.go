package adapter

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type startCall struct {
	name string
	args []string
}

func recordingViewer(command string, args []string, available map[string]bool) (*Viewer, *[]startCall) {
	var calls []startCall
	v := NewViewer(command, args, NullLogger())
	v.start = func(name string, args ...string) error {
		calls = append(calls, startCall{name: name, args: args})
		if available != nil && !available[name] {
			return errors.New("not found")
		}
		return nil
	}
	return v, &calls
}

func TestViewer_ConfiguredCommand(t *testing.T) {
	v, calls := recordingViewer("zathura", []string{"--fork"}, nil)

	require.NoError(t, v.Open("/dl/labels.pdf"))

	assert.Equal(t, []startCall{{name: "zathura", args: []string{"--fork", "/dl/labels.pdf"}}}, *calls)
}

func TestViewer_ConfiguredCommandMissing(t *testing.T) {
	v, _ := recordingViewer("zathura", nil, map[string]bool{})

	err := v.Open("/dl/labels.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "zathura")
}

func TestViewer_SystemDefault(t *testing.T) {
	v, calls := recordingViewer("", nil, nil)

	require.NoError(t, v.Open("/dl/labels.pdf"))

	require.Len(t, *calls, 1)
	assert.Equal(t, "/dl/labels.pdf", (*calls)[0].args[len((*calls)[0].args)-1])
}

func TestViewer_ArchiveFallsBackToDefault(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("archive handler chain differs per platform")
	}
	v, calls := recordingViewer("", nil, map[string]bool{"xdg-open": true})

	require.NoError(t, v.Open("/dl/batch.ZIP"))

	var names []string
	for _, c := range *calls {
		names = append(names, c.name)
	}
	// file-roller and ark are missing, xdg-open is the last archive handler
	assert.Equal(t, []string{"file-roller", "ark", "xdg-open"}, names)
}

func TestViewer_NothingAvailable(t *testing.T) {
	v, _ := recordingViewer("", nil, map[string]bool{})

	err := v.Open("/dl/labels.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "labels.pdf")
}
