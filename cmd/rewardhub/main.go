package main

import (
	"github.com/earningbd/rewardhub/internal/rewardhub"
	"github.com/earningbd/rewardhub/internal/rewardhub/config"
)

func main() {
	cfg := config.MustLoad()
	a := rewardhub.NewApp(cfg)
	a.Run()
}
