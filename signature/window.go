package signature

// Request 검증 요청
type Request struct {
	Data      []byte
	Signature string
	// Types 허용 서명 타입 후보 (앞쪽 우선)
	Types     []Type
	Format    Format
	Length    int
	Lookahead int
}

// Match 일치한 카운터 위치
type Match struct {
	// Offset 저장된 카운터로부터의 거리 (0 <= Offset < Lookahead)
	Offset  int
	// Counter 일치한 카운터 값
	Counter Counter
	Type    Type
}

// NextCounter 일치 후 저장할 다음 카운터
func (m Match) NextCounter() Counter {
	return m.Counter.Next()
}

// FindMatch searches counters start..start+Lookahead-1 crossed with the
// candidate types and returns the first (lowest counter, first listed type) match.
func FindMatch(keys FactorKeys, start Counter, req Request) (Match, bool, error) {
	candidates := make([][][]byte, len(req.Types))
	for i, t := range req.Types {
		k, err := keys.ForType(t)
		if err != nil {
			return Match{}, false, err
		}
		candidates[i] = k
	}

	ctr := start
	for offset := 0; offset < req.Lookahead; offset++ {
		ctrBytes := ctr.Bytes()
		for i, t := range req.Types {
			ok, err := Validate(req.Data, req.Signature, candidates[i], ctrBytes, req.Format, req.Length)
			if err != nil {
				return Match{}, false, err
			}
			if ok {
				return Match{Offset: offset, Counter: ctr, Type: t}, true, nil
			}
		}
		ctr = ctr.Next()
	}
	return Match{}, false, nil
}
