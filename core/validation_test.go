package core

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestValidateChunkSize(t *testing.T) {
	tests := []struct {
		name    string
		size    *int
		def     int
		want    int
		wantErr error
	}{
		{name: "nil uses default", size: nil, def: 500, want: 500},
		{name: "explicit value wins", size: intPtr(42), def: 500, want: 42},
		{name: "zero rejected", size: intPtr(0), def: 500, wantErr: ErrInvalidChunkingParameter},
		{name: "negative rejected", size: intPtr(-5), def: 500, wantErr: ErrInvalidChunkingParameter},
		{name: "bad default rejected", size: nil, def: 0, wantErr: ErrInvalidChunkingParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateChunkSize(tt.size, tt.def)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ValidateChunkSize() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateChunkSize() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ValidateChunkSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidateChunkOverlap(t *testing.T) {
	tests := []struct {
		name    string
		overlap *int
		def     int
		want    int
		wantErr error
	}{
		{name: "nil uses default", overlap: nil, def: 200, want: 200},
		{name: "zero allowed", overlap: intPtr(0), def: 200, want: 0},
		{name: "negative rejected", overlap: intPtr(-1), def: 200, wantErr: ErrInvalidChunkingParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateChunkOverlap(tt.overlap, tt.def)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ValidateChunkOverlap() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateChunkOverlap() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ValidateChunkOverlap() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidateChunking(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := ValidateChunking(nil, nil, 1000, 200)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Size != 1000 || p.Overlap != 200 {
			t.Errorf("got %+v", p)
		}
	})

	t.Run("overlap equal to size rejected", func(t *testing.T) {
		_, err := ValidateChunking(intPtr(100), intPtr(100), 1000, 200)
		if !errors.Is(err, ErrInvalidChunkingParameter) {
			t.Fatalf("expected ErrInvalidChunkingParameter, got %v", err)
		}
	})

	t.Run("default overlap larger than explicit size rejected", func(t *testing.T) {
		_, err := ValidateChunking(intPtr(100), nil, 1000, 200)
		if !errors.Is(err, ErrInvalidChunkingParameter) {
			t.Fatalf("expected ErrInvalidChunkingParameter, got %v", err)
		}
	})

	t.Run("size error reported before overlap", func(t *testing.T) {
		_, err := ValidateChunking(intPtr(0), intPtr(-1), 1000, 200)
		if !errors.Is(err, ErrInvalidChunkingParameter) {
			t.Fatalf("expected ErrInvalidChunkingParameter, got %v", err)
		}
	})
}
