package main

import (
	. "github.com/saylorsolutions/modmake"
)

const (
	vaultkeyVersion = "0.1.0"
)

func main() {
	b := NewBuild()
	b.Generate().DependsOnRunner("tidy", "", Go().ModTidy())

	vaultkey := NewAppBuild("vaultkey", "cmd/vaultkey", vaultkeyVersion)
	vaultkey.Build(func(gb *GoBuild) {
		gb.
			StripDebugSymbols().
			SetVariable("main", "version", vaultkeyVersion)
	})
	for _, target := range [][2]string{
		{"windows", "amd64"},
		{"linux", "amd64"},
		{"linux", "arm64"},
		{"darwin", "amd64"},
		{"darwin", "arm64"},
	} {
		vaultkey.Variant(target[0], target[1])
	}
	b.ImportApp(vaultkey)

	b.Execute()
}
