// Package docs 注册 HTTP 接口的 Swagger 文档
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
		"schemes": {{ marshal .Schemes }},
		"swagger": "2.0",
		"info": {
			"description": "{{escape .Description}}",
			"title": "{{.Title}}",
			"contact": {},
			"version": "{{.Version}}"
		},
		"host": "{{.Host}}",
		"basePath": "{{.BasePath}}",
		"paths": {
			"/api/v1/auth/guest": {
				"post": {
					"tags": [
						"Auth"
					],
					"summary": "获取游客令牌",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.TokenResponse"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"parameters": [
						{
							"description": "请求参数",
							"name": "request",
							"in": "body",
							"required": true,
							"schema": {
								"$ref": "#/definitions/api.GuestRequest"
							}
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/auth/refresh": {
				"post": {
					"tags": [
						"Auth"
					],
					"summary": "刷新访问令牌",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.TokenResponse"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"parameters": [
						{
							"description": "请求参数",
							"name": "request",
							"in": "body",
							"required": true,
							"schema": {
								"$ref": "#/definitions/api.RefreshRequest"
							}
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms": {
				"get": {
					"tags": [
						"Room"
					],
					"summary": "列出可加入的房间",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"description": "列出前先清理无人在线的房间",
					"parameters": [
						{
							"type": "integer",
							"name": "page",
							"in": "query"
						},
						{
							"type": "integer",
							"name": "page_size",
							"in": "query"
						}
					],
					"consumes": [
						"application/json"
					]
				},
				"post": {
					"tags": [
						"Room"
					],
					"summary": "创建房间",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"description": "请求参数",
							"name": "request",
							"in": "body",
							"required": true,
							"schema": {
								"$ref": "#/definitions/game.CreateRoomRequest"
							}
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/join": {
				"post": {
					"tags": [
						"Room"
					],
					"summary": "通过邀请码加入房间",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"description": "请求参数",
							"name": "request",
							"in": "body",
							"required": true,
							"schema": {
								"$ref": "#/definitions/api.JoinRequest"
							}
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}": {
				"get": {
					"tags": [
						"Room"
					],
					"summary": "房间快照",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/leave": {
				"post": {
					"tags": [
						"Room"
					],
					"summary": "离开房间",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/heartbeat": {
				"post": {
					"tags": [
						"Room"
					],
					"summary": "心跳",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/ready": {
				"post": {
					"tags": [
						"Room"
					],
					"summary": "设置准备状态",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						},
						{
							"description": "请求参数",
							"name": "request",
							"in": "body",
							"required": true,
							"schema": {
								"$ref": "#/definitions/api.ReadyRequest"
							}
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/kick": {
				"post": {
					"tags": [
						"Room"
					],
					"summary": "踢出玩家",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						},
						{
							"description": "请求参数",
							"name": "request",
							"in": "body",
							"required": true,
							"schema": {
								"$ref": "#/definitions/api.PlayerRequest"
							}
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/ban": {
				"post": {
					"tags": [
						"Room"
					],
					"summary": "踢出并封禁玩家",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						},
						{
							"description": "请求参数",
							"name": "request",
							"in": "body",
							"required": true,
							"schema": {
								"$ref": "#/definitions/api.PlayerRequest"
							}
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/start": {
				"post": {
					"tags": [
						"Round"
					],
					"summary": "开始游戏",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/skip-intro": {
				"post": {
					"tags": [
						"Round"
					],
					"summary": "跳过开场介绍",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/voting/start": {
				"post": {
					"tags": [
						"Round"
					],
					"summary": "开始投票",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/voting/end": {
				"post": {
					"tags": [
						"Round"
					],
					"summary": "结束投票并结算",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/rounds/advance": {
				"post": {
					"tags": [
						"Round"
					],
					"summary": "进入下一回合",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/finish": {
				"post": {
					"tags": [
						"Round"
					],
					"summary": "手动结束游戏",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/votes": {
				"post": {
					"tags": [
						"Round"
					],
					"summary": "投票",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						},
						{
							"description": "请求参数",
							"name": "request",
							"in": "body",
							"required": true,
							"schema": {
								"$ref": "#/definitions/api.VoteRequest"
							}
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/characteristics/{cid}/reveal": {
				"post": {
					"tags": [
						"Round"
					],
					"summary": "公开自己的特征",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						},
						{
							"type": "integer",
							"name": "cid",
							"in": "path",
							"required": true
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/cards/{card_id}/use": {
				"post": {
					"tags": [
						"Round"
					],
					"summary": "使用特殊卡牌",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						},
						{
							"type": "integer",
							"name": "card_id",
							"in": "path",
							"required": true
						},
						{
							"description": "请求参数",
							"name": "request",
							"in": "body",
							"required": true,
							"schema": {
								"$ref": "#/definitions/api.UseCardRequest"
							}
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/rooms/{id}/chat": {
				"post": {
					"tags": [
						"Room"
					],
					"summary": "发送聊天消息",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					],
					"parameters": [
						{
							"type": "integer",
							"description": "房间ID",
							"name": "id",
							"in": "path",
							"required": true
						},
						{
							"description": "请求参数",
							"name": "request",
							"in": "body",
							"required": true,
							"schema": {
								"$ref": "#/definitions/api.ChatRequest"
							}
						}
					],
					"consumes": [
						"application/json"
					]
				}
			},
			"/api/v1/stats/me": {
				"get": {
					"tags": [
						"Stats"
					],
					"summary": "我的战绩",
					"produces": [
						"application/json"
					],
					"responses": {
						"200": {
							"description": "OK",
							"schema": {
								"$ref": "#/definitions/api.Response"
							}
						},
						"400": {
							"description": "Bad Request",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"401": {
							"description": "Unauthorized",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"403": {
							"description": "Forbidden",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"404": {
							"description": "Not Found",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"409": {
							"description": "Conflict",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						},
						"429": {
							"description": "Too Many Requests",
							"schema": {
								"$ref": "#/definitions/errors.ErrorResponse"
							}
						}
					},
					"security": [
						{
							"Bearer": []
						}
					]
				}
			}
		},
		"definitions": {
			"api.Response": {
				"type": "object",
				"properties": {
					"success": {
						"type": "boolean"
					},
					"data": {
						"type": "object"
					}
				}
			},
			"api.GuestRequest": {
				"type": "object",
				"required": [
					"name"
				],
				"properties": {
					"name": {
						"type": "string"
					}
				}
			},
			"api.RefreshRequest": {
				"type": "object",
				"required": [
					"refresh_token"
				],
				"properties": {
					"refresh_token": {
						"type": "string"
					},
					"name": {
						"type": "string"
					}
				}
			},
			"api.TokenResponse": {
				"type": "object",
				"properties": {
					"user_id": {
						"type": "string"
					},
					"access_token": {
						"type": "string"
					},
					"refresh_token": {
						"type": "string"
					},
					"expires_in": {
						"type": "integer"
					}
				}
			},
			"api.JoinRequest": {
				"type": "object",
				"required": [
					"code",
					"name"
				],
				"properties": {
					"code": {
						"type": "string"
					},
					"name": {
						"type": "string"
					}
				}
			},
			"api.ReadyRequest": {
				"type": "object",
				"properties": {
					"ready": {
						"type": "boolean"
					}
				}
			},
			"api.PlayerRequest": {
				"type": "object",
				"required": [
					"player_id"
				],
				"properties": {
					"player_id": {
						"type": "integer"
					}
				}
			},
			"api.VoteRequest": {
				"type": "object",
				"required": [
					"target_id"
				],
				"properties": {
					"target_id": {
						"type": "integer"
					}
				}
			},
			"api.UseCardRequest": {
				"type": "object",
				"properties": {
					"target_player_id": {
						"type": "integer"
					},
					"characteristic_id": {
						"type": "integer"
					},
					"target_characteristic_id": {
						"type": "integer"
					}
				}
			},
			"api.ChatRequest": {
				"type": "object",
				"required": [
					"text"
				],
				"properties": {
					"text": {
						"type": "string"
					}
				}
			},
			"game.CreateRoomRequest": {
				"type": "object",
				"required": [
					"host_name"
				],
				"properties": {
					"name": {
						"type": "string"
					},
					"host_name": {
						"type": "string"
					},
					"max_players": {
						"type": "integer"
					},
					"round_mode": {
						"type": "string",
						"enum": [
							"automatic",
							"manual"
						]
					},
					"discussion_seconds": {
						"type": "integer"
					},
					"voting_seconds": {
						"type": "integer"
					},
					"intro_enabled": {
						"type": "boolean"
					},
					"chat_enabled": {
						"type": "boolean"
					},
					"cards_enabled": {
						"type": "boolean"
					}
				}
			},
			"errors.AppError": {
				"type": "object",
				"properties": {
					"code": {
						"type": "integer"
					},
					"message": {
						"type": "string"
					},
					"details": {
						"type": "string"
					}
				}
			},
			"errors.ErrorResponse": {
				"type": "object",
				"properties": {
					"success": {
						"type": "boolean"
					},
					"error": {
						"$ref": "#/definitions/errors.AppError"
					},
					"category": {
						"type": "string"
					},
					"request_id": {
						"type": "string"
					},
					"timestamp": {
						"type": "integer"
					}
				}
			}
		},
		"securityDefinitions": {
			"Bearer": {
				"type": "apiKey",
				"name": "Authorization",
				"in": "header"
			}
		}
	}`

// SwaggerInfo 文档元信息，运行时可覆盖 Host 等字段
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bunker Game API",
	Description:      "避难所社交推理游戏服务端接口",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
