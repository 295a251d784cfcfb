package main

//go:generate swag init -g cmd/klotto/main.go -o docs

// @title           klotto API
// @version         0.1.0
// @description     Lotto 6/45 draw history, frequency statistics, weighted number generation and draw sync.
// @host            localhost:8080
// @BasePath        /
// @schemes         http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
