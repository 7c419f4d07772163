package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/leonidz/blogicum/config"
	"github.com/leonidz/blogicum/utils"
)

// PagesController serves the static informational pages (about, rules)
// whose content is operator-configured.
type PagesController struct{}

func NewPagesController() *PagesController { return &PagesController{} }

// GetAbout returns the about page content.
func (p *PagesController) GetAbout(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"title": cfg.AboutTitle,
		"html":  cfg.AboutHTML,
	})
}

// GetRules returns the rules page content.
func (p *PagesController) GetRules(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"title": cfg.RulesTitle,
		"html":  cfg.RulesHTML,
	})
}
