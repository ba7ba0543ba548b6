package benchmarks

import (
	"embed"
	"fmt"
)

//go:embed programs/*.s
var programs embed.FS

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each one
// targets a single pipeline effect.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		independentALU(),
		rawChain(),
		loadUse(),
		storeData(),
		takenLoop(),
		notTaken(),
		jump(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation: a data
// hazard chain, a load-use pair and a loop.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		rawChain(),
		loadUse(),
		takenLoop(),
	}
}

func source(name string) string {
	data, err := programs.ReadFile("programs/" + name + ".s")
	if err != nil {
		panic(fmt.Sprintf("benchmarks: missing program %s: %v", name, err))
	}
	return string(data)
}

// 1. Independent ALU - no hazards, one instruction per cycle
func independentALU() Benchmark {
	return Benchmark{
		Name:        "independent_alu",
		Description: "8 independent ADDI operations - measures issue throughput",
		Source:      source("independent_alu"),
		ExpectedRegs: map[uint8]int32{
			1: 1, 2: 2, 3: 3, 4: 4, 5: 5, 6: 6, 7: 7, 8: 8,
		},
	}
}

// 2. RAW chain - every instruction depends on the previous one
func rawChain() Benchmark {
	return Benchmark{
		Name:         "raw_chain",
		Description:  "7 dependent adds - measures ALU forwarding",
		Source:       source("raw_chain"),
		ExpectedRegs: map[uint8]int32{1: 64},
	}
}

// 3. Load-use - a load result consumed by the next instruction
func loadUse() Benchmark {
	return Benchmark{
		Name:         "load_use",
		Description:  "2 load-use pairs - measures the load-use penalty",
		Source:       source("load_use"),
		ExpectedRegs: map[uint8]int32{2: 5, 3: 10, 5: 7, 6: 17},
	}
}

// 4. Store data - the stored value is produced right before the store
func storeData() Benchmark {
	return Benchmark{
		Name:         "store_data",
		Description:  "stores of freshly computed and loaded values - measures late store data",
		Source:       source("store_data"),
		ExpectedRegs: map[uint8]int32{2: 7, 3: 7, 4: 7},
	}
}

// 5. Taken loop - a backward branch mostly taken
func takenLoop() Benchmark {
	return Benchmark{
		Name:         "taken_loop",
		Description:  "5 iteration countdown loop - measures taken branch cost",
		Source:       source("taken_loop"),
		ExpectedRegs: map[uint8]int32{1: 0, 2: 5},
	}
}

// 6. Not taken - forward branches that never jump
func notTaken() Benchmark {
	return Benchmark{
		Name:         "not_taken",
		Description:  "3 never taken branches - measures fall through cost",
		Source:       source("not_taken"),
		ExpectedRegs: map[uint8]int32{1: 1, 2: 3},
	}
}

// 7. Jump - an unconditional jump over dead code
func jump() Benchmark {
	return Benchmark{
		Name:         "jump",
		Description:  "1 unconditional jump - measures jump cost",
		Source:       source("jump"),
		ExpectedRegs: map[uint8]int32{1: 0, 2: 1, 3: 2},
	}
}
