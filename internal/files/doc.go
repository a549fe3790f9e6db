// Package files provides file discovery and safe output writing.
//
// Discovery finds review files in a directory by glob pattern, sorted by
// name. Manager writes outputs through a temporary file and a rename, and
// computes the BLAKE2b-256 checksums recorded in run manifests.
//
//	discovery := files.NewDiscovery(baseDir)
//	found, err := discovery.FindFilesByPattern("data", "movrec_*.tsv")
//
//	manager := files.NewManager(logger)
//	err = manager.WriteFile("out/report.json", data)
//	sum, size, err := manager.Checksum("out/report.json")
package files
