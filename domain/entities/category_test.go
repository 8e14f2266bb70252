package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategories(t *testing.T) {
	set, err := ParseCategories("smoke, Mobile")
	require.NoError(t, err)
	assert.Equal(t, "mobile,smoke", set.String())
	assert.True(t, set.Selects(CategoryContent, CategoryMobile))
	assert.False(t, set.Selects(CategoryContent, CategorySearch))

	_, err = ParseCategories("smoke,nightly")
	assert.Error(t, err)
}

func TestEmptyCategorySetSelectsEverything(t *testing.T) {
	set, err := ParseCategories("")
	require.NoError(t, err)
	assert.True(t, set.Selects(CategorySlow))
	assert.True(t, CategorySet(nil).Selects(CategorySmoke))
}
