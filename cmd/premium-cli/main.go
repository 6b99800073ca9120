// cmd/premium-cli/main.go
package main

import (
	"context"
	"log"
	"os"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
