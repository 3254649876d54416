package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	// 注册接口文档
	_ "github.com/wfunc/bunker-game/docs"
)

// registerSwaggerRoutes 注册 Swagger 文档路由，由 server.enable_swagger 控制
func registerSwaggerRoutes(engine *gin.Engine) {
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.DocExpansion("none"),
	))
}
