package searchbox

import (
	"reflect"
	"testing"

	"github.com/bunchhieng/docsearch/internal/askai"
)

func TestFocusPolicyMount(t *testing.T) {
	p := &FocusPolicy{AutoFocus: true}
	if got := p.Observe(Signals{}); !reflect.DeepEqual(got, []FocusAction{FocusInput}) {
		t.Errorf("Expected focus on mount, got %v", got)
	}
	if got := p.Observe(Signals{}); len(got) != 0 {
		t.Errorf("Expected no actions on unchanged signals, got %v", got)
	}

	q := &FocusPolicy{}
	if got := q.Observe(Signals{}); len(got) != 0 {
		t.Errorf("Expected no focus without AutoFocus, got %v", got)
	}
}

func TestFocusPolicyFromSelection(t *testing.T) {
	p := &FocusPolicy{}
	p.Observe(Signals{})

	if got := p.Observe(Signals{FromSelection: true}); !reflect.DeepEqual(got, []FocusAction{SelectAll}) {
		t.Errorf("Expected select all, got %v", got)
	}
	if got := p.Observe(Signals{FromSelection: true}); len(got) != 0 {
		t.Errorf("Expected select all once per transition, got %v", got)
	}
	p.Observe(Signals{FromSelection: false})
	if got := p.Observe(Signals{FromSelection: true}); !reflect.DeepEqual(got, []FocusAction{SelectAll}) {
		t.Errorf("Expected select all after re-raise, got %v", got)
	}
}

func TestFocusPolicySelectionOnMount(t *testing.T) {
	p := &FocusPolicy{AutoFocus: true}
	got := p.Observe(Signals{FromSelection: true})
	if !reflect.DeepEqual(got, []FocusAction{FocusInput, SelectAll}) {
		t.Errorf("Expected focus and select all, got %v", got)
	}
}

func TestFocusPolicyBusyTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  askai.Status
		to    askai.Status
		focus bool
	}{
		{"streaming to ready", askai.StatusStreaming, askai.StatusReady, true},
		{"submitted to error", askai.StatusSubmitted, askai.StatusError, true},
		{"streaming to idle", askai.StatusStreaming, askai.StatusIdle, true},
		{"submitted to streaming", askai.StatusSubmitted, askai.StatusStreaming, false},
		{"idle to submitted", askai.StatusIdle, askai.StatusSubmitted, false},
		{"ready to idle", askai.StatusReady, askai.StatusIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &FocusPolicy{}
			p.Observe(Signals{AIStatus: tt.from})
			got := p.Observe(Signals{AIStatus: tt.to})
			if (len(got) == 1 && got[0] == FocusInput) != tt.focus {
				t.Errorf("Observe(%s -> %s) = %v, want focus=%v", tt.from, tt.to, got, tt.focus)
			}
			if again := p.Observe(Signals{AIStatus: tt.to}); len(again) != 0 {
				t.Errorf("Expected no repeat, got %v", again)
			}
		})
	}
}
