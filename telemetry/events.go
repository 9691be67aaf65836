// Package telemetry provides controller health tracking, bookmarking and
// snapshots for arena runs.
package telemetry

import (
	"math"
	"strings"

	"github.com/pthm-cable/avoid/control"
	"github.com/pthm-cable/avoid/policy"
)

// Turn classifies a command by the direction it steers.
type Turn string

const (
	TurnStraight Turn = "straight"
	TurnLeft     Turn = "left"
	TurnRight    Turn = "right"
	TurnStop     Turn = "stop"
)

// ClassifyTurn buckets angularVel the same way the output mapper does.
// Positive angular velocity steers left.
func ClassifyTurn(cmd policy.Command, deadband float64) Turn {
	switch {
	case cmd.Fallback && cmd.Left == 0 && cmd.Right == 0:
		return TurnStop
	case cmd.AngularVel < -deadband:
		return TurnRight
	case cmd.AngularVel > deadband:
		return TurnLeft
	default:
		return TurnStraight
	}
}

// TickRecord is one robot's control tick as written to ticks.csv.
type TickRecord struct {
	Tick    int32   `csv:"tick"`
	Robot   int     `csv:"robot"`
	SimTime float64 `csv:"sim_time"`
	X       float64 `csv:"x"`
	Y       float64 `csv:"y"`
	Heading float64 `csv:"heading"`

	S0 float64 `csv:"s0"`
	S1 float64 `csv:"s1"`
	S2 float64 `csv:"s2"`
	S3 float64 `csv:"s3"`
	S4 float64 `csv:"s4"`
	S5 float64 `csv:"s5"`
	S6 float64 `csv:"s6"`
	S7 float64 `csv:"s7"`

	MinFront   float64 `csv:"min_front"`
	Velocidad  float64 `csv:"velocidad"`
	AngularVel float64 `csv:"angular_vel"`
	Left       float64 `csv:"left"`
	Right      float64 `csv:"right"`
	Turn       Turn    `csv:"turn"`
	Fallback   bool    `csv:"fallback"`
	Unfired    string  `csv:"unfired"`
	Fired      int     `csv:"fired_rules"`
	SensorErr  bool    `csv:"sensor_err"`
	Substitute int     `csv:"substituted"`
	InferUS    int64   `csv:"infer_us"`
	Contact    bool    `csv:"contact"`
}

// Pose is where a robot was when a tick was taken.
type Pose struct {
	X, Y, Heading float64
	Contact       bool
}

// NewTickRecord flattens a control tick.
func NewTickRecord(tick int32, simTime float64, robot int, pose Pose, t control.Tick, deadband float64) TickRecord {
	r := TickRecord{
		Tick:       tick,
		Robot:      robot,
		SimTime:    simTime,
		X:          pose.X,
		Y:          pose.Y,
		Heading:    pose.Heading,
		Contact:    pose.Contact,
		Velocidad:  t.Command.Velocidad,
		AngularVel: t.Command.AngularVel,
		Left:       t.Command.Left,
		Right:      t.Command.Right,
		Turn:       ClassifyTurn(t.Command, deadband),
		Fallback:   t.Command.Fallback,
		Unfired:    strings.Join(t.Command.Unfired, ";"),
		SensorErr:  t.SensorErr != nil,
		Substitute: t.Substituted,
		InferUS:    t.Infer.Microseconds(),
	}

	front := [policy.NumSensors]*float64{&r.S0, &r.S1, &r.S2, &r.S3, &r.S4, &r.S5, &r.S6, &r.S7}
	r.MinFront = 1
	for i, dst := range front {
		if i >= len(t.Sonar) {
			*dst = math.NaN()
			continue
		}
		*dst = t.Sonar[i]
		r.MinFront = min(r.MinFront, t.Sonar[i])
	}

	for _, s := range t.Command.Strengths {
		if s > 0 {
			r.Fired++
		}
	}
	return r
}
