/*
Copyright © 2025 Hooksmith Authors
*/
package main

import "github.com/hooksmith/hooksmith/cmd"

func main() {
	cmd.Execute()
}
