package gc

import "fmt"

func errOutOfMemory(region Region) error {
	return fmt.Errorf("gc: out of memory allocating from %s region", region)
}
