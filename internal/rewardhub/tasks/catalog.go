package tasks

import (
	"fmt"
	"sync"

	"github.com/earningbd/rewardhub/internal/rewardhub/types"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskExists    = errors.New("task with this title already exists")
	ErrInvalidReward = errors.New("task reward must be positive")
	ErrAdNotFound    = errors.New("ad campaign not found")
)

// AdTaskID is the completion key under which an ad view is recorded, so the
// double-credit guard covers ads the same way it covers tasks.
func AdTaskID(adID string) string {
	return "ad:" + adID
}

// Catalog is the in-memory listing of earn tasks and sponsored ad campaigns.
// Admins manage tasks; the catalog itself never touches a profile.
type Catalog struct {
	mu     sync.RWMutex
	tasks  []types.EarnTask
	ads    []types.AdCampaign
	nextID int
}

func NewCatalog() *Catalog {
	return &Catalog{
		tasks: []types.EarnTask{
			{ID: "task1", Title: "Watch Sponsor Video", Reward: decimal.NewFromInt(5), Icon: "play", Description: "Watch a 30 second sponsor clip to the end."},
			{ID: "task2", Title: "Daily Survey", Reward: decimal.NewFromInt(8), Icon: "clipboard", Description: "Answer three quick questions."},
			{ID: "task3", Title: "Install Partner App", Reward: decimal.NewFromInt(20), Icon: "download", Description: "Install and open the partner app once."},
			{ID: "task4", Title: "Share With A Friend", Reward: decimal.NewFromInt(10), Icon: "share", Description: "Share your referral link anywhere."},
		},
		ads: []types.AdCampaign{
			{ID: "ad1", SponsorName: "FreshMart", Reward: decimal.NewFromInt(3), Category: "grocery", VideoURL: "https://cdn.example.com/ads/freshmart.mp4", Thumbnail: "https://cdn.example.com/ads/freshmart.jpg", Description: "Weekly essentials, delivered."},
			{ID: "ad2", SponsorName: "RideGo", Reward: decimal.NewFromInt(4), Category: "transport", VideoURL: "https://cdn.example.com/ads/ridego.mp4", Thumbnail: "https://cdn.example.com/ads/ridego.jpg", Description: "Your city, one tap away."},
		},
		nextID: 5,
	}
}

func (c *Catalog) Tasks() []types.EarnTask {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.EarnTask, len(c.tasks))
	copy(out, c.tasks)
	return out
}

func (c *Catalog) Task(id string) (*types.EarnTask, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tasks {
		if t.ID == id {
			task := t
			return &task, nil
		}
	}
	return nil, ErrTaskNotFound
}

// CreateTask registers a new earn task and assigns it an id. Titles are
// unique across the catalog.
func (c *Catalog) CreateTask(title string, reward decimal.Decimal, icon, description string) (*types.EarnTask, error) {
	if reward.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidReward
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.Title == title {
			return nil, ErrTaskExists
		}
	}
	task := types.EarnTask{
		ID:          fmt.Sprintf("task%d", c.nextID),
		Title:       title,
		Reward:      reward,
		Icon:        icon,
		Description: description,
	}
	c.nextID++
	c.tasks = append(c.tasks, task)
	return &task, nil
}

func (c *Catalog) UpdateTaskReward(id string, reward decimal.Decimal) error {
	if reward.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidReward
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i].Reward = reward
			return nil
		}
	}
	return ErrTaskNotFound
}

func (c *Catalog) Ads() []types.AdCampaign {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.AdCampaign, len(c.ads))
	copy(out, c.ads)
	return out
}

func (c *Catalog) Ad(id string) (*types.AdCampaign, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.ads {
		if a.ID == id {
			ad := a
			return &ad, nil
		}
	}
	return nil, ErrAdNotFound
}
