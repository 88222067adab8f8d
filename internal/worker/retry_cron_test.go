package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeRetryBackoffDoubles(t *testing.T) {
	assert.Equal(t, time.Minute, ComputeRetryBackoff(1))
	assert.Equal(t, 2*time.Minute, ComputeRetryBackoff(2))
	assert.Equal(t, 4*time.Minute, ComputeRetryBackoff(3))
	assert.Equal(t, 16*time.Minute, ComputeRetryBackoff(5))
}

func TestComputeRetryBackoffFloorsAtFirstAttempt(t *testing.T) {
	assert.Equal(t, time.Minute, ComputeRetryBackoff(0))
	assert.Equal(t, time.Minute, ComputeRetryBackoff(-3))
}
