/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/RainersCode/rugby-team-portal/cmd"

func main() {
	cmd.Execute()
}
