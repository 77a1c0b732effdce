package main

import (
	"github.com/craftora/marketplace/internal/app"
	"github.com/craftora/marketplace/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
