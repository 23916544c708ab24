package main

import "github.com/MadnessASAP/SinoJTAG/cmd/sinojtag/cmd"

func main() {
	cmd.Execute()
}
