// Command xxldemo wires the record manager and the merge sorter
// together end to end: it inserts a batch of variable-length records,
// updates one of them, then feeds every stored record through the
// external merge sort and prints the result in order.
package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"

	"github.com/xxlcore/xxl/core/container"
	"github.com/xxlcore/xxl/core/mergesort"
	"github.com/xxlcore/xxl/core/placement"
	"github.com/xxlcore/xxl/core/queue"
	"github.com/xxlcore/xxl/core/recordmgr"
	"github.com/xxlcore/xxl/core/tidmgr"
	"github.com/xxlcore/xxl/logger"
)

type scorecard struct {
	name  string
	score int32
}

func encodeScorecard(s scorecard) []byte {
	var b bytes.Buffer
	b.WriteByte(byte(len(s.name)))
	b.WriteString(s.name)
	var scoreBuf [4]byte
	binary.BigEndian.PutUint32(scoreBuf[:], uint32(s.score))
	b.Write(scoreBuf[:])
	return b.Bytes()
}

func decodeScorecard(raw []byte) scorecard {
	nameLen := int(raw[0])
	name := string(raw[1 : 1+nameLen])
	score := int32(binary.BigEndian.Uint32(raw[1+nameLen:]))
	return scorecard{name: name, score: score}
}

func fatalOnError(err error, context string) {
	if err == nil {
		return
	}
	logger.Errorf("%s: %v", context, err)
	os.Exit(1)
}

func main() {
	fmt.Println("=== record manager + merge sort demo ===")

	mgr := recordmgr.New(recordmgr.Config{
		Container:              container.NewMemoryContainer(512),
		PageSize:               512,
		Strategy:               placement.NewFirstFitStrategy(),
		TIDManager:             tidmgr.NewLinkManager(container.Uint32IDConverter{}),
		NumberOfDirectReserves: 4,
	})

	names := []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi"}
	rng := rand.New(rand.NewSource(1))

	var ids []tidmgr.PublicID
	for _, name := range names {
		id, err := mgr.Insert(encodeScorecard(scorecard{name: name, score: int32(rng.Intn(1000))}))
		fatalOnError(err, "insert failed")
		ids = append(ids, id)
	}
	logger.Infof("inserted %d scorecards", len(ids))

	// bump one score to exercise the update path.
	raw, err := mgr.Get(ids[0])
	fatalOnError(err, "get failed")
	sc := decodeScorecard(raw)
	sc.score += 10000
	fatalOnError(mgr.Update(ids[0], encodeScorecard(sc)), "update failed")

	fatalOnError(mgr.CheckConsistency(), "consistency check failed")
	fmt.Printf("pages=%d records=%d bytesUsed=%d spaceUsage=%.2f\n",
		mgr.NumberOfPages(), mgr.Size(), mgr.SizeOfAllStoredRecords(), mgr.SpaceUsage())

	fmt.Println()
	fmt.Println("=== sorting scorecards by score ===")

	records := make([]scorecard, 0, len(ids))
	for _, id := range ids {
		raw, err := mgr.Get(id)
		fatalOnError(err, "get failed")
		records = append(records, decodeScorecard(raw))
	}

	source := &scorecardSource{records: records}
	sorter := mergesort.New(mergesort.Config{
		Params: mergesort.Params{
			ObjectSize:             32,
			MemSize:                32 * 64,
			FinalMemSize:           32 * 16,
			BlockSize:              32,
			FirstOutputBufferRatio: 0.3,
			OutputBufferRatio:      0.3,
			InputBufferRatio:       0.3,
			FinalInputBufferRatio:  0.3,
		},
		Source:       source,
		Comparator:   byScore,
		QueueFactory: queue.NewMemoryQueueFactory(),
	})
	fatalOnError(sorter.Open(), "sort failed to open")
	defer sorter.Close()

	for {
		ok, err := sorter.HasNext()
		fatalOnError(err, "sort failed")
		if !ok {
			break
		}
		v, err := sorter.Next()
		fatalOnError(err, "sort failed")
		s := v.(scorecard)
		fmt.Printf("  %-10s %d\n", s.name, s.score)
	}
}

type scorecardSource struct {
	records []scorecard
	pos     int
}

func (s *scorecardSource) Next() (interface{}, bool) {
	if s.pos >= len(s.records) {
		return nil, false
	}
	v := s.records[s.pos]
	s.pos++
	return v, true
}

func byScore(a, b interface{}) int {
	return int(a.(scorecard).score) - int(b.(scorecard).score)
}
