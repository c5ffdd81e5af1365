/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "chatpop/cmd"

func main() {
	cmd.Execute()
}
