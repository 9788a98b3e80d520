package server

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"

	"envctl/internal/manifest"
	"envctl/internal/pkgmgr"
	"envctl/internal/provision"
	"envctl/internal/psgallery"
	appver "envctl/internal/version"
)

func mountAPI(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": appver.AppVersion})
	})
	api.GET("/catalog", catalogHandler)
	api.GET("/status", statusHandler)
}

func catalogHandler(c *gin.Context) {
	mgr, err := pkgmgr.Detect()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	tools, modules, _ := manifest.Effective(mgr.Name(), runtime.GOOS)
	c.JSON(http.StatusOK, gin.H{
		"manager": mgr.Name(),
		"tools":   tools,
		"modules": modules,
	})
}

// statusHandler runs a fresh verification pass per request; resolutions are
// never cached, so the answer always reflects live system state.
func statusHandler(c *gin.Context) {
	mgr, err := pkgmgr.Detect()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	tools, modules, _ := manifest.Effective(mgr.Name(), runtime.GOOS)
	r := provision.NewResolver(mgr, psgallery.Detect())
	rep := r.VerifyAll(c.Request.Context(), tools, modules)
	c.JSON(http.StatusOK, rep)
}
