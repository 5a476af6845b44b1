package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/EmpoweredVote/server-timing/internal/demo"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := demo.LoadFromEnv()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	h := &demo.Handlers{}
	if cfg.DatabaseURL != "" {
		d, err := demo.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database: ", err)
		}
		if err := demo.Migrate(d); err != nil {
			log.Fatal("Failed to migrate database: ", err)
		}
		if err := demo.SeedBookmarks(d, 50); err != nil {
			log.Fatal("Failed to seed bookmarks: ", err)
		}
		h.DB = d
		log.Println("Connected to database")
	}

	r, err := demo.NewRouter(cfg, h)
	if err != nil {
		log.Fatal("Failed to build router: ", err)
	}

	fmt.Println("Server listening on port :" + cfg.Port + "...")
	log.Fatal(http.ListenAndServe("0.0.0.0:"+cfg.Port, r))
}
