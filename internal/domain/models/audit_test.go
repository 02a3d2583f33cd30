package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeMetadata(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string]string
		updates  map[string]string
		want     map[string]string
	}{
		{
			name:     "disjoint keys merge",
			existing: map[string]string{"a": "1"},
			updates:  map[string]string{"b": "2"},
			want:     map[string]string{"a": "1", "b": "2"},
		},
		{
			name:     "updates win on conflict",
			existing: map[string]string{"a": "1", "b": "2"},
			updates:  map[string]string{"a": "9"},
			want:     map[string]string{"a": "9", "b": "2"},
		},
		{
			name:     "nil existing",
			existing: nil,
			updates:  map[string]string{"a": "1"},
			want:     map[string]string{"a": "1"},
		},
		{
			name:     "nil updates",
			existing: map[string]string{"a": "1"},
			updates:  nil,
			want:     map[string]string{"a": "1"},
		},
		{
			name:     "both nil",
			existing: nil,
			updates:  nil,
			want:     map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeMetadata(tt.existing, tt.updates)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeMetadata_DoesNotMutateInputs(t *testing.T) {
	existing := map[string]string{"a": "1"}
	updates := map[string]string{"a": "9", "b": "2"}

	_ = MergeMetadata(existing, updates)

	assert.Equal(t, map[string]string{"a": "1"}, existing)
	assert.Equal(t, map[string]string{"a": "9", "b": "2"}, updates)
}
