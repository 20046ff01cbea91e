package main

import (
	"github.com/joho/godotenv"

	"github.com/mlcortes/wburn/cmd"
)

func main() {
	// A .env in the working directory can carry WBURN_SERVER_URL and
	// WBURN_SECRET; absence is fine.
	_ = godotenv.Load()

	cmd.Execute()
}
