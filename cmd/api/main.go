package main

import (
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Payment Records API
// @version         1.0
// @description     Payment records with a status state machine and soft delete.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Printf("[cli] %v", err)
		os.Exit(1)
	}
}
