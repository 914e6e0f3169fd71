// loader.go - ROM/Flat-Image Loader
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

// LoadROM loads the image at path into memory and resets the CPU to its
// architectural power-on state, so execution always begins from a clean
// register file regardless of what ran before.
func (c *CPU) LoadROM(path string) error {
	if err := c.Mem.LoadROM(path); err != nil {
		return err
	}
	c.Reset()
	return nil
}
