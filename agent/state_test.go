package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractExperienceYears(t *testing.T) {
	assert.Equal(t, 4, extractExperienceYears("4-8 Yrs"))
	assert.Equal(t, 2, extractExperienceYears("2 Yrs"))
	assert.Equal(t, 0, extractExperienceYears("0-1 Yrs"))
	assert.Equal(t, 12, extractExperienceYears("12+ years"))
	assert.Equal(t, unparseableExperience, extractExperienceYears("Not specified"))
	assert.Equal(t, unparseableExperience, extractExperienceYears(""))
	assert.Equal(t, unparseableExperience, extractExperienceYears("freshers welcome"))
}
