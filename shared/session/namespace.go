package session

import "golang.org/x/sys/unix"

// Kind names one of the seven namespace kinds a session can touch.
type Kind string

// The seven namespace kinds, in the order entry must happen: user must come
// first so the caller gains the capability to enter the rest; mnt must come
// last because chrooting happens after namespace attachment.
const (
	KindUser   Kind = "user"
	KindUTS    Kind = "uts"
	KindIPC    Kind = "ipc"
	KindNet    Kind = "net"
	KindCgroup Kind = "cgroup"
	KindPID    Kind = "pid"
	KindMount  Kind = "mnt"
)

// Namespace pairs a namespace kind with its clone flag and its
// /proc/<pid>/ns/<ProcName> file name.
type Namespace struct {
	Kind      Kind
	CloneFlag int
	ProcName  string
}

// Vector is the fixed, ordered namespace vector shared by the Spawner's
// clone-flag computation and the Enterer's attachment loop. Order matters:
// see the Kind constants above.
var Vector = []Namespace{
	{Kind: KindUser, CloneFlag: unix.CLONE_NEWUSER, ProcName: "user"},
	{Kind: KindUTS, CloneFlag: unix.CLONE_NEWUTS, ProcName: "uts"},
	{Kind: KindIPC, CloneFlag: unix.CLONE_NEWIPC, ProcName: "ipc"},
	{Kind: KindNet, CloneFlag: unix.CLONE_NEWNET, ProcName: "net"},
	{Kind: KindCgroup, CloneFlag: unix.CLONE_NEWCGROUP, ProcName: "cgroup"},
	{Kind: KindPID, CloneFlag: unix.CLONE_NEWPID, ProcName: "pid"},
	{Kind: KindMount, CloneFlag: unix.CLONE_NEWNS, ProcName: "mnt"},
}
