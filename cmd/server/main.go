package main

import (
	"log"

	"reelgram/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
