package config

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// InitRouter tạo gin engine với CORS theo WHITE_LIST (rỗng = cho phép mọi origin)
func InitRouter(cfg AppConfig) *gin.Engine {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	configCors := cors.DefaultConfig()
	configCors.AddAllowHeaders("Authorization")
	configCors.AllowCredentials = true
	allowed := make(map[string]bool, len(cfg.CorsOrigins))
	for _, o := range cfg.CorsOrigins {
		allowed[o] = true
	}
	configCors.AllowOriginFunc = func(origin string) bool {
		return len(allowed) == 0 || allowed[origin]
	}
	router.Use(cors.New(configCors))

	_ = router.SetTrustedProxies(nil)
	return router
}
