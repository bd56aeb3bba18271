// Command shelf manages the content records behind the admin dashboard.
package main

import "github.com/mesh-intelligence/shelf/internal/cli"

func main() {
	cli.Execute()
}
