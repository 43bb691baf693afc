package main

import (
	"github.com/SundayYogurt/scholarship_service/config"
	"github.com/SundayYogurt/scholarship_service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
