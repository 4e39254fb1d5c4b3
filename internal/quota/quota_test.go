package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognitext/cognitext/internal/config"
	"github.com/cognitext/cognitext/internal/models"
)

func TestEvaluate_Boundaries(t *testing.T) {
	p := NewPolicy(config.QuotaConfig{FreeMaxPages: 5, ProMaxPages: 25})

	tests := []struct {
		name       string
		pages      int
		subscribed bool
		wantErr    bool
	}{
		{"free at limit", 5, false, false},
		{"free one over", 6, false, true},
		{"free well under", 1, false, false},
		{"pro at limit", 25, true, false},
		{"pro one over", 26, true, true},
		{"pro accepts what free rejects", 6, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Evaluate(tt.pages, tt.subscribed)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluate_ErrorDetails(t *testing.T) {
	p := NewPolicy(config.QuotaConfig{FreeMaxPages: 2, ProMaxPages: 10})

	err := p.Evaluate(3, false)
	require.Error(t, err)

	var exceeded *ExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, 3, exceeded.Pages)
	assert.Equal(t, 2, exceeded.Limit)
	assert.Equal(t, models.TierFree, exceeded.Tier)
}

func TestLimit(t *testing.T) {
	p := NewPolicy(config.QuotaConfig{FreeMaxPages: 5, ProMaxPages: 25})
	assert.Equal(t, 5, p.Limit(false))
	assert.Equal(t, 25, p.Limit(true))
}
