/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/longkey1/chatpad/cmd"

func main() {
	cmd.Execute()
}
