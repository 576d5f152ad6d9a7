package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeFolderName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name passes through", "Reports", "Reports"},
		{"reserved characters become underscores", `a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"surrounding whitespace trimmed", "  Quarterly  ", "Quarterly"},
		{"only whitespace collapses to empty", "   ", ""},
		{"unicode preserved", "รายงาน-2025", "รายงาน-2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeFolderName(tt.in))
		})
	}
}

func TestNormalizeFolderNameIdempotent(t *testing.T) {
	inputs := []string{`inv/oices`, "  padded  ", "clean", `x:y|z`}
	for _, in := range inputs {
		once := NormalizeFolderName(in)
		require.Equal(t, once, NormalizeFolderName(once))
	}
}

func TestFolderFromPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare file name has no folder", "report.pdf", ""},
		{"single parent", "invoices/report.pdf", "invoices"},
		{"deep path takes immediate parent", "2025/q3/invoices/report.pdf", "invoices"},
		{"windows separators handled", `2025\invoices\report.pdf`, "invoices"},
		{"empty path", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FolderFromPath(tt.in))
		})
	}
}

func TestS3EnsureFolderBuildsPrefix(t *testing.T) {
	s := &S3Store{}
	prefix, err := s.EnsureFolder(context.Background(), "invoices")
	require.NoError(t, err)
	require.Equal(t, "invoices/", prefix)

	empty, err := s.EnsureFolder(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "", empty)
}
