package main

import "csv-chart-api/internal/cli"

func main() {
	cli.Execute()
}
