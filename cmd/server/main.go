package main

import "vulcanhr/internal/app/server"

func main() {
	server.Run()
}
