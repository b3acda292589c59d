package rubric

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	catalog := Defaults()

	assert.Equal(t, []string{SimpleInterrupted, Subcuticular, VerticalMattress}, catalog.Types())

	for _, sutureType := range catalog.Types() {
		set, err := catalog.Lookup(sutureType)
		require.NoError(t, err)
		require.NoError(t, set.Validate(), sutureType)
		assert.Len(t, set.Items, 7, sutureType)
	}

	interrupted, err := catalog.Lookup(SimpleInterrupted)
	require.NoError(t, err)
	modalities := make([]Modality, 0, len(interrupted.Items))
	for _, item := range interrupted.Items {
		modalities = append(modalities, item.Modality)
	}
	assert.Equal(t, []Modality{ModalityVideo, ModalityVideo, ModalityVideo, ModalityStill, ModalityStill, ModalityStill, ModalityVideo}, modalities)

	sub, err := catalog.Lookup(Subcuticular)
	require.NoError(t, err)
	assert.Equal(t, ModalityStill, sub.Items[5].Modality)
}

func TestDefaultsAreIndependent(t *testing.T) {
	first := Defaults()
	first.Sets[SimpleInterrupted].Items[0].Text = "changed"

	second := Defaults()
	assert.Equal(t, "Passes needle perpendicular to skin on both sides of skin", second.Sets[SimpleInterrupted].Items[0].Text)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Defaults().Lookup("purse_string")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown or not supported")
}

func TestLoadOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rubrics.yaml")

	content := `rubrics:
  - suture_type: horizontal_mattress
    title: Horizontal Mattress Suture
    items:
      - index: 1
        name: bite symmetry
        text: Places symmetric bites on both sides
        ideal_result: Bites mirror each other across the wound
        modality: VIDEO
      - index: 2
        text: Approximates skin with appropriate tension
        modality: STILL
  - suture_type: subcuticular
    title: Subcuticular Suture
    items:
      - index: 1
        text: Runs the suture
        modality: VIDEO
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	catalog, err := Load(path)
	require.NoError(t, err)

	added, err := catalog.Lookup("horizontal_mattress")
	require.NoError(t, err)
	assert.Len(t, added.Items, 2)
	assert.Equal(t, "bite symmetry", added.Items[0].ItemName())
	assert.Equal(t, "approximates skin with appropriate tension", added.Items[1].ItemName())

	replaced, err := catalog.Lookup(Subcuticular)
	require.NoError(t, err)
	assert.Len(t, replaced.Items, 1)

	kept, err := catalog.Lookup(SimpleInterrupted)
	require.NoError(t, err)
	assert.Len(t, kept.Items, 7)
}

func TestLoadEmptyPath(t *testing.T) {
	catalog, err := Load("")
	require.NoError(t, err)
	assert.Len(t, catalog.Sets, 3)
}

func TestLoadNonexistent(t *testing.T) {
	_, err := Load("/nonexistent/rubrics.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		set     Set
		wantErr bool
	}{
		{
			name: "valid",
			set:  Set{SutureType: "x", Items: []Item{{Index: 1, Text: "a", Modality: ModalityVideo}}},
		},
		{
			name:    "missing suture type",
			set:     Set{Items: []Item{{Index: 1, Text: "a", Modality: ModalityVideo}}},
			wantErr: true,
		},
		{
			name:    "no items",
			set:     Set{SutureType: "x"},
			wantErr: true,
		},
		{
			name:    "index gap",
			set:     Set{SutureType: "x", Items: []Item{{Index: 2, Text: "a", Modality: ModalityVideo}}},
			wantErr: true,
		},
		{
			name:    "empty text",
			set:     Set{SutureType: "x", Items: []Item{{Index: 1, Text: " ", Modality: ModalityVideo}}},
			wantErr: true,
		},
		{
			name:    "bad modality",
			set:     Set{SutureType: "x", Items: []Item{{Index: 1, Text: "a", Modality: "AUDIO"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Simple Interrupted", DisplayName(SimpleInterrupted))
	assert.Equal(t, "Subcuticular", DisplayName(Subcuticular))
}
