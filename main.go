package main

import "github.com/maviontech/project-management/cmd"

func main() {
	cmd.Execute()
}
