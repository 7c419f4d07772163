package main

import (
	"github.com/leonidz/blogicum/config"
	"github.com/leonidz/blogicum/models"
	"github.com/leonidz/blogicum/routes"
	"github.com/leonidz/blogicum/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Category{}, &models.Location{}, &models.Post{}, &models.Comment{}, &models.PageView{})

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
