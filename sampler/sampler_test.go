package sampler

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/wanderer/backend"
	"github.com/domino14/wanderer/city"
)

type statCall struct {
	stat  backend.Statistic
	field string
	where string
}

type fakeFeatures struct {
	cities  map[int64]city.City
	stats   map[backend.Statistic]int64
	ranked  []city.City
	byIDErr error

	idQueries   [][]int64
	statCalls   []statCall
	rankedWhere string
	rankedOrder string
	rankedOff   int
}

func (f *fakeFeatures) QueryByIDs(_ context.Context, ids []int64) ([]city.City, error) {
	f.idQueries = append(f.idQueries, append([]int64(nil), ids...))
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	var out []city.City
	for _, id := range ids {
		if c, ok := f.cities[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeFeatures) QueryStatistic(_ context.Context, stat backend.Statistic, field, where string) (int64, error) {
	f.statCalls = append(f.statCalls, statCall{stat, field, where})
	v, ok := f.stats[stat]
	if !ok {
		return 0, backend.QueryErrorf("no %s", stat)
	}
	return v, nil
}

func (f *fakeFeatures) QueryRanked(_ context.Context, where, orderBy string, offset, limit int) ([]city.City, error) {
	f.rankedWhere, f.rankedOrder, f.rankedOff = where, orderBy, offset
	if offset >= len(f.ranked) {
		return nil, nil
	}
	return f.ranked[offset : offset+limit], nil
}

func pop(id, p int64) city.City {
	return city.City{ID: id, Name: "city", Population: p, HasPopulation: true}
}

// seqSource returns ids from a fixed sequence, offset into [0, n).
func seqSource(minID int64, ids ...int64) func(int) int {
	i := 0
	return func(n int) int {
		id := ids[i%len(ids)]
		i++
		return int(id - minID)
	}
}

func TestSampleDistinctPairSkipsDisqualified(t *testing.T) {
	is := is.New(t)
	f := &fakeFeatures{cities: map[int64]city.City{
		1: pop(1, 10),
		2: pop(2, 20),
		3: {ID: 3}, // null population
		4: pop(4, 5000),
		5: pop(5, 7000),
	}}
	s := New(f, DefaultMaxRounds)
	// duplicates in the draw sequence must be skipped, not re-queried
	s.SetRandSource(seqSource(1, 1, 2, 2, 1, 3, 4, 3, 1, 5))

	pair, err := s.SampleDistinctPair(context.Background(), 1, 5, 1000)
	is.NoErr(err)
	is.Equal(pair.Current.ID, int64(4))
	is.Equal(pair.Target.ID, int64(5))

	is.Equal(f.idQueries, [][]int64{{1, 2}, {3, 4}, {5}})
	seen := map[int64]bool{}
	for _, q := range f.idQueries {
		for _, id := range q {
			is.True(!seen[id]) // queried twice
			seen[id] = true
		}
	}
}

func TestSampleDistinctPairSameBatch(t *testing.T) {
	is := is.New(t)
	f := &fakeFeatures{cities: map[int64]city.City{
		10: pop(10, 100),
		11: pop(11, 200),
		12: pop(12, 300),
	}}
	s := New(f, DefaultMaxRounds)
	s.SetRandSource(seqSource(10, 12, 10, 11))

	pair, err := s.SampleDistinctPair(context.Background(), 10, 12, 100)
	is.NoErr(err)
	is.Equal(pair.Current.ID, int64(12))
	is.Equal(pair.Target.ID, int64(10))
	is.Equal(len(f.idQueries), 1)
	is.NoErr(pair.Valid(100))
}

func TestSampleDistinctPairExhaustsRange(t *testing.T) {
	is := is.New(t)
	f := &fakeFeatures{cities: map[int64]city.City{
		1: pop(1, 10),
		2: pop(2, 5000),
		3: pop(3, 10),
	}}
	s := New(f, 0)
	s.SetRandSource(seqSource(1, 1, 2, 3))

	_, err := s.SampleDistinctPair(context.Background(), 1, 3, 1000)
	is.True(errors.Is(err, backend.ErrQuery))
	is.Equal(len(f.idQueries), 2)
}

func TestSampleDistinctPairMaxRounds(t *testing.T) {
	is := is.New(t)
	cities := map[int64]city.City{}
	for i := int64(1); i <= 100; i++ {
		cities[i] = pop(i, 1)
	}
	f := &fakeFeatures{cities: cities}
	s := New(f, 3)
	s.SetRandSource(seqSource(1, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10))

	_, err := s.SampleDistinctPair(context.Background(), 1, 100, 1000)
	is.True(errors.Is(err, backend.ErrQuery))
	is.Equal(len(f.idQueries), 3)
}

func TestSampleDistinctPairQueryError(t *testing.T) {
	is := is.New(t)
	f := &fakeFeatures{byIDErr: backend.Unavailable("query", errors.New("refused"))}
	s := New(f, DefaultMaxRounds)
	s.SetRandSource(seqSource(1, 1, 2))

	_, err := s.SampleDistinctPair(context.Background(), 1, 2, 1)
	is.True(errors.Is(err, backend.ErrUnavailable))
}

func TestSampleDistinctPairBadRange(t *testing.T) {
	is := is.New(t)
	s := New(&fakeFeatures{}, DefaultMaxRounds)
	_, err := s.SampleDistinctPair(context.Background(), 5, 4, 1)
	is.True(errors.Is(err, backend.ErrQuery))
}

func TestResolveThreshold(t *testing.T) {
	is := is.New(t)
	ranked := make([]city.City, 0, 20)
	for i := int64(0); i < 20; i++ {
		ranked = append(ranked, pop(i, 20000-i*1000))
	}
	f := &fakeFeatures{ranked: ranked, stats: map[backend.Statistic]int64{backend.StatCount: 20}}
	s := New(f, DefaultMaxRounds)

	minPop, err := s.ResolveThreshold(context.Background(), 10)
	is.NoErr(err)
	is.Equal(minPop, int64(11000))
	is.Equal(f.rankedOff, 9)
	is.Equal(f.rankedOrder, "population DESC")
	is.Equal(f.rankedWhere, "population IS NOT NULL")
	is.Equal(len(f.statCalls), 0)

	// all cities: the count comes from the backend
	minPop, err = s.ResolveThreshold(context.Background(), AllCities)
	is.NoErr(err)
	is.Equal(minPop, int64(1000))
	is.Equal(f.statCalls, []statCall{{backend.StatCount, "FID", "population IS NOT NULL"}})
}

func TestResolveThresholdMissing(t *testing.T) {
	is := is.New(t)
	f := &fakeFeatures{ranked: []city.City{pop(1, 100), {ID: 2}}}
	s := New(f, DefaultMaxRounds)

	_, err := s.ResolveThreshold(context.Background(), 5)
	is.True(errors.Is(err, backend.ErrQuery)) // no record

	_, err = s.ResolveThreshold(context.Background(), 2)
	is.True(errors.Is(err, backend.ErrQuery)) // null population

	_, err = s.ResolveThreshold(context.Background(), AllCities)
	is.True(errors.Is(err, backend.ErrQuery)) // count missing
}

func TestPrepare(t *testing.T) {
	is := is.New(t)
	f := &fakeFeatures{
		ranked: []city.City{pop(7, 9000), pop(8, 8000)},
		stats:  map[backend.Statistic]int64{backend.StatMin: 7, backend.StatMax: 9},
		cities: map[int64]city.City{7: pop(7, 9000), 8: pop(8, 8000), 9: pop(9, 100)},
	}
	s := New(f, DefaultMaxRounds)
	s.SetRandSource(seqSource(7, 9, 8, 7))

	setup, err := s.Prepare(context.Background(), 2)
	is.NoErr(err)
	is.Equal(setup.MinPopulation, int64(8000))
	is.Equal(setup.Pair.Current.ID, int64(8))
	is.Equal(setup.Pair.Target.ID, int64(7))
	is.Equal(f.statCalls[0], statCall{backend.StatMin, "FID", "population >= 8000"})
	is.Equal(f.statCalls[1], statCall{backend.StatMax, "FID", "population >= 8000"})
}

func TestParseDifficulty(t *testing.T) {
	is := is.New(t)
	type testcase struct {
		in    string
		exp   Difficulty
		ok    bool
		count int
	}
	for _, tc := range []testcase{
		{"0", Easy, true, 10},
		{"1", Medium, true, 100},
		{"2", Hard, true, 1000},
		{"3", Legendary, true, AllCities},
		{" hard ", Hard, true, 1000},
		{"7", Easy, false, 10},
		{"", Easy, false, 10},
	} {
		d, ok := ParseDifficulty(tc.in)
		is.Equal(d, tc.exp)
		is.Equal(ok, tc.ok)
		is.Equal(d.CityCount(), tc.count)
	}
	is.Equal(Legendary.String(), "legendary")
}
