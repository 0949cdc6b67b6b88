package window

import (
	"errors"
	"reflect"
	"testing"
)

type fakeWindow struct {
	calls    *[]string
	showErr  error
	focusErr error
}

func (w *fakeWindow) Show() error {
	*w.calls = append(*w.calls, "show")
	return w.showErr
}

func (w *fakeWindow) Focus() error {
	*w.calls = append(*w.calls, "focus")
	return w.focusErr
}

type fakeRegistry map[string]Window

func (r fakeRegistry) Window(label string) (Window, bool) {
	w, ok := r[label]
	return w, ok
}

func TestOpen(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		label     string
		showErr   error
		focusErr  error
		wantErr   error
		wantCalls []string
	}{
		{"shows then focuses", MainLabel, nil, nil, nil, []string{"show", "focus"}},
		{"missing main window", "settings", nil, nil, ErrWindowUnavailable, nil},
		{"show fails", MainLabel, boom, nil, boom, []string{"show"}},
		{"focus fails", MainLabel, nil, boom, boom, []string{"show", "focus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			registry := fakeRegistry{
				tt.label: &fakeWindow{calls: &calls, showErr: tt.showErr, focusErr: tt.focusErr},
			}

			err := NewManager(registry, nil).Open()

			if tt.wantErr == nil && err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Open() error = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", calls, tt.wantCalls)
			}
		})
	}
}

func TestOpenNilRegistry(t *testing.T) {
	if err := NewManager(nil, nil).Open(); !errors.Is(err, ErrWindowUnavailable) {
		t.Errorf("Open() error = %v, want ErrWindowUnavailable", err)
	}
}
