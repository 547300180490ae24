package main

// @title           Arte Ideas API
// @version         1.0
// @description     Sales orders, payments and stock for Arte Ideas photography studios

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description JWT bearer token. Example: "Bearer {token}"
