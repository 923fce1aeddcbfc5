// Package docs содержит описание HTTP API для swagger UI.
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
        "/bill": {
            "post": {
                "description": "Списывает остатки по всем строкам чека и сохраняет чек. При любой ошибке остатки не меняются",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bills"],
                "summary": "Проведение чека",
                "parameters": [
                    {
                        "description": "Строки чека",
                        "name": "bill",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.CreateBillRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Чек сохранён", "schema": {"$ref": "#/definitions/http.MessageResponse"}},
                    "400": {"description": "Не хватает остатка или ошибка валидации", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Товар не найден", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка", "schema": {"$ref": "#/definitions/http.MessageResponse"}}
                }
            }
        },
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Список товаров",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProductsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Создаёт товар на складе. Имя товара уникально",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Добавление товара",
                "parameters": [
                    {
                        "description": "Товар",
                        "name": "product",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.ProductRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Товар добавлен", "schema": {"$ref": "#/definitions/http.MessageResponse"}},
                    "400": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Товар с таким именем уже есть", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/price": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Цена товара по имени",
                "parameters": [
                    {"type": "string", "description": "Имя товара", "name": "productName", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.PriceResponse"}},
                    "404": {"description": "Товар не найден", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/suggestions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Имена всех товаров",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SuggestionsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/{id}": {
            "put": {
                "description": "Полностью перезаписывает поля товара. Пустая дата оставляет дату создания без изменений",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Изменение товара",
                "parameters": [
                    {"type": "integer", "description": "ID товара", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Новые значения",
                        "name": "product",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.ProductRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.UpdateProductResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Товар не найден", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Имя занято другим товаром", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/signup": {
            "post": {
                "description": "Создаёт пользователя. Пароль хранится в виде bcrypt-хэша, изображение уходит в S3",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Регистрация пользователя",
                "parameters": [
                    {"type": "string", "description": "Логин", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Пароль", "name": "password", "in": "formData", "required": true},
                    {"type": "string", "description": "Роль", "name": "role", "in": "formData", "required": true},
                    {"type": "string", "description": "Возраст", "name": "age", "in": "formData"},
                    {"type": "string", "description": "Пол", "name": "gender", "in": "formData"},
                    {"type": "string", "description": "Дата (RFC3339 или 2006-01-02)", "name": "date", "in": "formData"},
                    {"type": "string", "description": "Смена", "name": "shift", "in": "formData"},
                    {"type": "file", "description": "Изображение профиля", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Пользователь создан", "schema": {"$ref": "#/definitions/http.MessageResponse"}},
                    "400": {"description": "Не заполнены поля или логин занят", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "413": {"description": "Слишком большое изображение", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "415": {"description": "Неподдерживаемый формат изображения", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Вход",
                "parameters": [
                    {
                        "description": "Логин и пароль",
                        "name": "credentials",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.UserResponse"}},
                    "401": {"description": "Неверный логин или пароль", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Список пользователей",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.UsersResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Удаление пользователя",
                "parameters": [
                    {"type": "integer", "description": "ID пользователя", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/uploads/{key}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["users"],
                "summary": "Изображение профиля",
                "parameters": [
                    {"type": "string", "description": "Ключ объекта", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "404 - Not Found", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "http.CreateBillRequest": {
            "type": "object",
            "properties": {
                "purchases": {"type": "array", "items": {"$ref": "#/definitions/http.PurchaseDTO"}}
            }
        },
        "http.PurchaseDTO": {
            "type": "object",
            "properties": {
                "productName": {"type": "string"},
                "price": {"type": "number"},
                "quantity": {"type": "number"},
                "date": {"type": "string"}
            }
        },
        "http.ProductRequest": {
            "type": "object",
            "properties": {
                "productName": {"type": "string"},
                "price": {"type": "number"},
                "type": {"type": "string"},
                "units": {"type": "number"},
                "date": {"type": "string"}
            }
        },
        "http.ProductResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "productName": {"type": "string"},
                "price": {"type": "number"},
                "type": {"type": "string"},
                "units": {"type": "number"},
                "date": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "http.ProductsResponse": {
            "type": "object",
            "properties": {
                "products": {"type": "array", "items": {"$ref": "#/definitions/http.ProductResponse"}}
            }
        },
        "http.UpdateProductResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "updatedProduct": {"$ref": "#/definitions/http.ProductResponse"}
            }
        },
        "http.SuggestionsResponse": {
            "type": "object",
            "properties": {
                "productNames": {"type": "array", "items": {"type": "string"}}
            }
        },
        "http.PriceResponse": {
            "type": "object",
            "properties": {
                "price": {"type": "number"}
            }
        },
        "http.LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "http.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "role": {"type": "string"},
                "image": {"type": "string"},
                "gender": {"type": "string"},
                "age": {"type": "string"},
                "date": {"type": "string"},
                "shift": {"type": "string"}
            }
        },
        "http.UsersResponse": {
            "type": "object",
            "properties": {
                "users": {"type": "array", "items": {"$ref": "#/definitions/http.UserResponse"}}
            }
        },
        "http.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "POS backend API",
	Description:      "Склад, чеки и пользователи кассы.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
