package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 后台面板跨域调用
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range corsHeaders {
			c.Header(k, v)
		}
		c.Next()
	}
}

func preflight(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
