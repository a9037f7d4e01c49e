package main

import (
	"fmt"
	"os"

	"gitee.com/czyczk/sbom-asset-transfer/internal/service"
	"gitee.com/czyczk/sbom-asset-transfer/internal/utils/uploadutils"
)

// Prints the digest an SBOM file gets on the ledger and the name it gets in the upload directory.
//
// $ go run ./cmd/sbomdigest sbom.json
// hash (md5): <hex digest>
// compact: {"component":"libX","version":"1.0"}
// upload name: bafkrei<...>
func main() {
	if len(os.Args) != 2 && len(os.Args) != 3 {
		fmt.Println("Usage: go run ./cmd/sbomdigest <sbom_path> [md5|sha256|sm3]")
		os.Exit(2)
	}

	algorithmName := ""
	if len(os.Args) == 3 {
		algorithmName = os.Args[2]
	}

	algorithm, err := service.ParseDigestAlgorithm(algorithmName)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	payload, err := service.LoadPayload(os.Args[1], algorithm)
	if err != nil {
		fmt.Printf("Cannot load the SBOM: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("Cannot read the SBOM: %v\n", err)
		os.Exit(1)
	}

	uploadName, err := uploadutils.ContentName(data)
	if err != nil {
		fmt.Printf("Cannot name the SBOM: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("hash (%v): %v\n", payload.Algorithm, payload.Digest)
	fmt.Printf("compact: %v\n", payload.Compact)
	fmt.Printf("upload name: %v\n", uploadName)
}
