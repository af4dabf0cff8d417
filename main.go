package main

import (
	"enum-sync/cmd"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/lib/pq"
)

func main() {
	cmd.Execute()
}
