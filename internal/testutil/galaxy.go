package testutil

// SmallGalaxyHCL is a five-system galaxy with a cycle (2 <-> 4) and a node
// reachable over two paths (5).
const SmallGalaxyHCL = `
explorers {
  count      = 3
  hash_count = 2
  algorithm  = "sha256"
}

galaxy {
  start = 1
}

solar_system "1" {
  frequency  = "alpha"
  neighbours = [2, 3]
}

solar_system "2" {
  frequency  = "beta"
  neighbours = [4, 5]
}

solar_system "3" {
  frequency  = "gamma"
  neighbours = [5]
}

solar_system "4" {
  frequency  = "delta"
  neighbours = [2]
}

solar_system "5" {
  frequency = "epsilon"
}
`
