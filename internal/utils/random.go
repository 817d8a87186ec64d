package utils

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// Roller encapsule un générateur aléatoire dédié à une simulation.
// Un seed explicite rend chaque tirage reproductible; un seed nul est
// remplacé par un tirage d'entropie. Un Roller n'est pas partageable
// entre goroutines.
type Roller struct {
	rng  *rand.Rand
	seed int64
}

// NewRoller construit un générateur à partir d'un seed.
// Un seed nul est remplacé par EntropySeed().
func NewRoller(seed int64) *Roller {
	if seed == 0 {
		seed = EntropySeed()
	}
	return &Roller{rng: rand.New(rand.NewSource(seed)), seed: seed}
}

// EntropySeed tire un seed non nul depuis l'entropie du système
func EntropySeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// Repli en cas d'erreur (ne devrait pas arriver)
		return time.Now().UnixNano()
	}
	seed := int64(binary.BigEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return seed
}

// Seed retourne le seed effectif du générateur
func (r *Roller) Seed() int64 {
	return r.seed
}

// Float64 tire un flottant dans [0.0, 1.0)
func (r *Roller) Float64() float64 {
	return r.rng.Float64()
}

// Intn tire un entier dans [0, n)
func (r *Roller) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.Intn(n)
}

// Between tire un entier dans [min, max] inclus
func (r *Roller) Between(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.rng.Intn(max-min+1)
}

// Chance retourne vrai avec une probabilité p
func (r *Roller) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.rng.Float64() < p
}

// Variance tire un facteur multiplicatif dans [1-spread, 1+spread]
func (r *Roller) Variance(spread float64) float64 {
	if spread <= 0 {
		return 1.0
	}
	return 1.0 - spread + r.rng.Float64()*2.0*spread
}

// WeightedIndex tire un indice selon des poids relatifs.
// Des poids tous nuls équivalent à un tirage uniforme.
func (r *Roller) WeightedIndex(weights []float64) int {
	if len(weights) == 0 {
		return 0
	}
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return r.rng.Intn(len(weights))
	}
	roll := r.rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		roll -= w
		if roll < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Fork dérive un générateur indépendant pour un sous-calcul,
// de manière reproductible à partir du flux parent
func (r *Roller) Fork() *Roller {
	child := r.rng.Int63()
	if child == 0 {
		child = 1
	}
	return &Roller{rng: rand.New(rand.NewSource(child)), seed: child}
}
