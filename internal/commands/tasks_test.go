package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskAddCategoryDefault(t *testing.T) {
	require.NoError(t, taskAddCmd.Flags().Parse(nil))

	category, err := taskAddCmd.Flags().GetString("category")
	require.NoError(t, err)
	assert.Equal(t, "general", category,
		"add must default to the general category when the flag is omitted")
}

func TestTaskListFlagsIndependentOfAdd(t *testing.T) {
	// Filter flags on list default to match-everything and must not
	// bleed into add's defaults.
	require.NoError(t, taskListCmd.Flags().Parse([]string{"--category", "work", "--priority", "high"}))

	listCat, err := taskListCmd.Flags().GetString("category")
	require.NoError(t, err)
	assert.Equal(t, "work", listCat)

	require.NoError(t, taskAddCmd.Flags().Parse(nil))
	addCat, err := taskAddCmd.Flags().GetString("category")
	require.NoError(t, err)
	assert.Equal(t, "general", addCat)

	addPrio, err := taskAddCmd.Flags().GetString("priority")
	require.NoError(t, err)
	assert.Empty(t, addPrio)
}
