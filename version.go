package sockets

var Version = "0.1.0"
