package tasks

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededCatalog(t *testing.T) {
	c := NewCatalog()

	list := c.Tasks()
	require.NotEmpty(t, list)
	for _, task := range list {
		assert.NotEmpty(t, task.ID)
		assert.NotEmpty(t, task.Title)
		assert.True(t, task.Reward.GreaterThan(decimal.Zero))
	}

	task, err := c.Task("task1")
	require.NoError(t, err)
	assert.Equal(t, "task1", task.ID)
	assert.True(t, task.Reward.Equal(decimal.NewFromInt(5)))

	_, err = c.Task("nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	ads := c.Ads()
	require.NotEmpty(t, ads)
	ad, err := c.Ad(ads[0].ID)
	require.NoError(t, err)
	assert.Equal(t, ads[0].SponsorName, ad.SponsorName)

	_, err = c.Ad("nope")
	assert.ErrorIs(t, err, ErrAdNotFound)
}

func TestCreateTask(t *testing.T) {
	c := NewCatalog()
	before := len(c.Tasks())

	task, err := c.CreateTask("Follow On Social", decimal.NewFromInt(7), "heart", "Follow the official page.")
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Len(t, c.Tasks(), before+1)

	_, err = c.CreateTask("Follow On Social", decimal.NewFromInt(9), "heart", "duplicate")
	assert.ErrorIs(t, err, ErrTaskExists)

	_, err = c.CreateTask("Zero Pay", decimal.Zero, "x", "no reward")
	assert.ErrorIs(t, err, ErrInvalidReward)
}

func TestUpdateTaskReward(t *testing.T) {
	c := NewCatalog()

	require.NoError(t, c.UpdateTaskReward("task1", decimal.NewFromInt(12)))
	task, err := c.Task("task1")
	require.NoError(t, err)
	assert.True(t, task.Reward.Equal(decimal.NewFromInt(12)))

	assert.ErrorIs(t, c.UpdateTaskReward("nope", decimal.NewFromInt(1)), ErrTaskNotFound)
	assert.ErrorIs(t, c.UpdateTaskReward("task1", decimal.NewFromInt(-1)), ErrInvalidReward)
}

func TestAdTaskID(t *testing.T) {
	assert.Equal(t, "ad:ad1", AdTaskID("ad1"))
}

func TestTasksReturnsCopy(t *testing.T) {
	c := NewCatalog()
	list := c.Tasks()
	list[0].Title = "mutated"

	fresh := c.Tasks()
	assert.NotEqual(t, "mutated", fresh[0].Title)
}
