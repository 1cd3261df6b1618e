// Package files finds sales sheets on disk.
//
// Discovery lists the data files in a directory, newest first, so a caller
// handed a folder of monthly exports can pick the latest one:
//
//	path, err := files.NewDiscovery(workDir).ResolveDataFile("data")
package files
