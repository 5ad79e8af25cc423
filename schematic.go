// Package schematic analyzes engine schematics: character grids of part
// numbers and symbols. It finds the numbers that touch a symbol and the gears
// that join exactly two numbers.
package schematic
