package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/goadmin/internal/auth"
	"github.com/leapstack-labs/goadmin/pkg/core"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []uint
		wantErr bool
	}{
		{"none", nil, []uint{}, false},
		{"separate", []string{"1", "2"}, []uint{1, 2}, false},
		{"comma list", []string{"3,4", " 5 "}, []uint{3, 4, 5}, false},
		{"trailing comma", []string{"6,"}, []uint{6}, false},
		{"zero", []string{"0"}, nil, true},
		{"negative", []string{"-1"}, nil, true},
		{"word", []string{"1,abc"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    core.Status
		wantErr bool
	}{
		{"", 0, false},
		{"normal", core.StatusNormal, false},
		{"Enabled", core.StatusNormal, false},
		{"1", core.StatusNormal, false},
		{"disabled", core.StatusDisabled, false},
		{"2", core.StatusDisabled, false},
		{"3", 0, true},
		{"off", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChoice(t *testing.T) {
	p := auth.SessionExpiredPrompt

	tests := []struct {
		answer string
		want   auth.Choice
	}{
		{"", auth.ChoiceCancel},
		{"r", auth.ChoiceConfirm},
		{"Refresh", auth.ChoiceConfirm},
		{"y", auth.ChoiceConfirm},
		{"yes", auth.ChoiceConfirm},
		{"  R  ", auth.ChoiceConfirm},
		{"s", auth.ChoiceCancel},
		{"stay", auth.ChoiceCancel},
		{"no", auth.ChoiceCancel},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChoice(tt.answer, p))
		})
	}
}

func TestJoinOrDash(t *testing.T) {
	assert.Equal(t, "-", joinOrDash(nil))
	assert.Equal(t, "a, b", joinOrDash([]string{"a", "b"}))
	assert.Equal(t, []string{"1", "22"}, uintsToStrings([]uint{1, 22}))
}
