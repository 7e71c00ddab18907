package main

import (
	"github.com/tokyogo/backend/internal/app"
	"github.com/tokyogo/backend/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
