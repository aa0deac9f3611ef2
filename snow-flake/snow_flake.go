package snow_flake

import (
	"time"

	"github.com/grpc-boot/atom/atomic"

	"github.com/pkg/errors"
)

const (
	ModeWait    = 1
	ModeMaxTime = 2
	ModeError   = 3
)

const (
	indexBits = 12
	maxIndex  = 1<<indexBits - 1
)

var (
	ErrOutOfRange = errors.New("out of range")
	ErrTimeBack   = errors.New("time go back")
	ErrMachineId  = errors.New("illegal machine id")
	ErrLogicId    = errors.New("illegal logic id")
)

//1位0，41位毫秒时间戳，8位机器码，2位业务码，12位递增值
//
// The last timestamp and the index share one word, (timestamp << 12) | index,
// so a single FetchUpdate advances both and concurrent Id calls never hand out
// the same pair.
type SnowFlake struct {
	mode           uint8
	timeStampBegin int64
	machId         int64
	state          atomic.Int64
	step           work
	clock          func() int64
}

type work func(cur int64) (next int64, err error)

func milliseconds() int64 {
	return time.Now().UnixMilli()
}

func New(mode uint8, id int, timeStampBegin int64) (sf *SnowFlake, err error) {
	if id < 0 || id > 0xff {
		return nil, ErrMachineId
	}

	sf = &SnowFlake{
		mode:           mode,
		timeStampBegin: timeStampBegin,
		machId:         int64(id) << 14,
		clock:          milliseconds,
	}
	sf.state.Store(sf.clock() << indexBits)

	switch mode {
	case ModeMaxTime:
		sf.step = sf.max
	case ModeError:
		sf.step = sf.err
	default:
		sf.step = sf.wait
	}
	return
}

func (sf *SnowFlake) Id(logicId uint8) (int64, error) {
	if logicId > 3 {
		return 0, ErrLogicId
	}

	var (
		next int64
		err  error
	)
	sf.state.FetchUpdate(func(cur int64) int64 {
		next, err = sf.step(cur)
		return next
	})
	if err != nil {
		return 0, err
	}

	lastTimeStamp, index := next>>indexBits, next&maxIndex
	return ((lastTimeStamp - sf.timeStampBegin) << 22) + sf.machId + (int64(logicId) << 12) + index, nil
}

func (sf *SnowFlake) Info(id int64) (timestamp int64, machineId uint8, logicId uint8, index int16) {
	timestamp = (id >> 22) + sf.timeStampBegin
	machineId = uint8((id >> 14) & 0xff)
	logicId = uint8((id >> 12) & 3)
	index = int16(id & 0xfff)
	return
}

// tick advances cur to curTimeStamp, which must not be behind it. On error it
// returns cur so the state is republished unchanged.
func tick(cur, curTimeStamp int64) (next int64, err error) {
	if curTimeStamp == cur>>indexBits {
		if cur&maxIndex == maxIndex {
			return cur, ErrOutOfRange
		}
		return cur + 1, nil
	}
	return curTimeStamp << indexBits, nil
}

func (sf *SnowFlake) wait(cur int64) (next int64, err error) {
	lastTimeStamp := cur >> indexBits
	curTimeStamp := sf.clock()

	//时钟回拨等待处理
	for curTimeStamp < lastTimeStamp {
		time.Sleep(time.Millisecond * 5)
		curTimeStamp = sf.clock()
	}

	return tick(cur, curTimeStamp)
}

func (sf *SnowFlake) max(cur int64) (next int64, err error) {
	lastTimeStamp := cur >> indexBits
	curTimeStamp := sf.clock()

	//时钟回拨使用最大时间
	if curTimeStamp < lastTimeStamp {
		curTimeStamp = lastTimeStamp
	}

	return tick(cur, curTimeStamp)
}

func (sf *SnowFlake) err(cur int64) (next int64, err error) {
	curTimeStamp := sf.clock()
	//时钟回拨直接抛出异常
	if curTimeStamp < cur>>indexBits {
		return cur, ErrTimeBack
	}

	return tick(cur, curTimeStamp)
}
